// Package rpc implements a MessagePack-RPC connection over a byte stream,
// the protocol Neovim speaks to jobs started with rpc = true.
//
// Messages are msgpack arrays:
//
//	request       [0, msgid, method, params]
//	response      [1, msgid, error, result]
//	notification  [2, method, params]
//
// A Conn is symmetric: it issues requests to the peer with Call, sends
// notifications with Notify, and hands every notification the peer sends
// to Notifications in arrival order. Requests from the peer are answered
// with a method-not-found error.
//
// The read loop never waits for the notification consumer. Handlers can
// therefore make Calls from the goroutine that drains Notifications
// without deadlocking on their own responses.
package rpc
