package realtime

import "github.com/gofiber/websocket/v2"

// WebSocketConn membungkus koneksi fiber websocket milik satu sesi
// dashboard, biar hub cukup kenal tipe ini tanpa import paket websocket.
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}
