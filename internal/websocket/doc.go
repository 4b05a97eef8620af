// Package websocket implements the dashboard re-render channel.
//
// A Hub owns the set of connected clients. Each Client runs a read pump that
// hands inbound messages to a MessageHandler and a write pump that delivers
// replies and keep-alive pings. Replies always travel through the
// hub so a client's send channel is only ever written or closed by one
// goroutine.
package websocket
