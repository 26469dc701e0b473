package protocol

import (
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc is the callback signature for message handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, env *Envelope)

// Registry maps message types to handlers. Unknown types and malformed
// envelopes are dropped with a diagnostic — never fatal to the loop.
type Registry struct {
	handlers map[MessageType]HandlerFunc
	selfID   string
	log      *zap.Logger
}

func NewRegistry(selfID string, log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[MessageType]HandlerFunc),
		selfID:   selfID,
		log:      log,
	}
}

// Register maps a message type to a handler.
func (reg *Registry) Register(mt MessageType, fn HandlerFunc) {
	reg.handlers[mt] = fn
}

// Dispatch parses the envelope in data and calls the registered handler.
// Loop-back messages (senderId == own id) are ignored. Returns an error
// only for frames that could not be parsed at all.
func (reg *Registry) Dispatch(sess any, data []byte) error {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}
	if env.SenderID == reg.selfID {
		return nil // loop-back suppression
	}

	mt := ParseMessageType(env.MessageType)
	if mt == MsgUnknown {
		reg.log.Debug("unknown message type, dropping",
			zap.String("type", env.MessageType),
			zap.String("sender", env.SenderID),
		)
		return nil
	}

	fn, ok := reg.handlers[mt]
	if !ok {
		reg.log.Debug("no handler for message type", zap.String("type", string(mt)))
		return nil
	}

	return reg.safeCall(fn, sess, env, mt)
}

// safeCall executes a handler with panic recovery so a single bad message
// cannot take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, env *Envelope, mt MessageType) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", string(mt)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", mt, rec)
		}
	}()
	fn(sess, env)
	return nil
}
