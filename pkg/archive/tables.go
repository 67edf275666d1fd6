package archive

// Message roles form a closed set; Append rejects anything else.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleTool
}

// Session represents a row in the sessions SQLite table.
// One row per resumable conversation; total_cost_usd only ever grows.
type Session struct {
	ID           string  `json:"id"`
	StartedAt    string  `json:"started_at"`
	LastActiveAt string  `json:"last_active_at"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	MessageCount int     `json:"message_count"`
}

// Message represents a row in the messages SQLite table.
// Insertion order and timestamp order agree; rows are never reordered.
// For RoleTool the content is a JSON envelope distinguishing tool
// invocation from tool result.
type Message struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Note represents a row in the notes SQLite table.
// Tags is a JSON-encoded string array. FilePath points at the markdown
// mirror on disk when one exists.
type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Tags      string `json:"tags"`
	FilePath  string `json:"file_path"`
	CreatedAt string `json:"created_at"`
	SessionID string `json:"session_id"`
}

// Research represents a row in the research SQLite table.
// Sources is a JSON-encoded string array of URLs.
type Research struct {
	ID        int64  `json:"id"`
	Query     string `json:"query"`
	Sources   string `json:"sources"`
	Analysis  string `json:"analysis"`
	CreatedAt string `json:"created_at"`
	SessionID string `json:"session_id"`
}

// Document represents a row in the documents SQLite table.
type Document struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	SessionID   string `json:"session_id"`
}
