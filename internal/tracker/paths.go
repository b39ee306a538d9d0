package tracker

// Paths builds document paths for one account namespace.
type Paths struct {
	root string
}

// UserPaths scopes every collection under users/{uid}/. An empty uid falls
// back to the flat layout.
func UserPaths(uid string) Paths {
	if uid == "" {
		return FlatPaths()
	}
	return Paths{root: "users/" + uid + "/"}
}

// FlatPaths uses top-level collections.
func FlatPaths() Paths {
	return Paths{}
}

func (p Paths) Tasks() string              { return p.root + "tasks" }
func (p Paths) Task(id string) string      { return p.Tasks() + "/" + id }
func (p Paths) Projects() string           { return p.root + "projects" }
func (p Paths) Project(id string) string   { return p.Projects() + "/" + id }
func (p Paths) Inbox() string              { return p.root + "inbox" }
func (p Paths) InboxItem(id string) string { return p.Inbox() + "/" + id }
func (p Paths) Reminders() string          { return p.root + "reminders" }
func (p Paths) Reminder(id string) string  { return p.Reminders() + "/" + id }
func (p Paths) Settings() string           { return p.root + "settings" }
func (p Paths) Preferences() string        { return p.Settings() + "/" + PreferencesDocID }
func (p Paths) Meta() string               { return p.Settings() + "/" + MetaDocID }
func (p Paths) Profile() string            { return p.Settings() + "/" + ProfileDocID }

// Document ids inside the settings collection.
const (
	PreferencesDocID = "user_preferences"
	MetaDocID        = "meta"
	ProfileDocID     = "profile"
)
