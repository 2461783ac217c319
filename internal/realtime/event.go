package realtime

// Event is the wire envelope for server-to-client pushes.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// server-to-client event names
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
)
