// Package protocol encodes and decodes the batchexecute RPC envelope.
//
// Everything here is pure: functions take text in and return values out,
// with no I/O and no shared state. The client package owns the network.
//
// Request envelope (form-encoded POST body):
//
//	f.req=[[["<rpc id>","<params json>",null,"generic"]]]&at=<csrf>&
//
// Response envelope:
//
//	)]}'
//	<byte count>
//	[["wrb.fr","<rpc id>","<result json>",null,null,null,"generic"],...]
//	<byte count>
//	[...]
//
// The streaming query endpoint uses a flatter request envelope
// ([null,"<params json>"]) and returns many chunks, each carrying either an
// answer fragment (type 1) or a thinking fragment (type 2).
//
// Decoded values are positional JSON arrays; the Index/List/String helpers
// walk them without panicking on short or mistyped data.
package protocol
