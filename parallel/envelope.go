package parallel

import (
	"errors"

	"github.com/utkarsh5026/parallel/internal/wire"
)

// sealError wraps an error for transport from a worker process to the
// parent. Break and Kill travel as sentinel tags. Other errors are
// gob-encoded best-effort: when the concrete type cannot be serialized
// (unexported fields, unregistered type) only the formatted message
// crosses, and the parent substitutes a RemoteError. The envelope itself
// always serializes; the parent never sees a transport failure because a
// work function returned an odd error value.
func sealError(err error) *wire.Envelope {
	env := &wire.Envelope{Message: err.Error()}

	switch {
	case errors.Is(err, Kill):
		env.Sentinel = wire.SentinelKill
	case errors.Is(err, Break):
		env.Sentinel = wire.SentinelBreak
	default:
		env.Encoded = wire.EncodeError(err)
	}
	return env
}

// openEnvelope reverses sealError on the parent side. It always yields a
// usable error value.
func openEnvelope(env *wire.Envelope) error {
	switch env.Sentinel {
	case wire.SentinelKill:
		return Kill
	case wire.SentinelBreak:
		return Break
	}

	if err, ok := wire.DecodeError(env.Encoded); ok {
		return err
	}
	return &RemoteError{Message: env.Message}
}
