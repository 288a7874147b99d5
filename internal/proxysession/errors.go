package proxysession

import "errors"

// ErrClientProtocol is returned from the client-to-upstream pump when the
// RESP framer reports a Malformed frame.
var ErrClientProtocol = errors.New("proxysession: malformed RESP request from client")

// errDropped is the internal sentinel used to unwind the client-to-upstream
// pump when a DropConn fault fires. Run logs it as the close reason and
// may return it to its caller as the session's error.
var errDropped = errors.New("proxysession: session dropped by fault plan")
