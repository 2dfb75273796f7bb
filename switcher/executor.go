package switcher

import (
	"context"
	"fmt"

	"userswitch/session"
)

// Outcome reports what Switch did.
type Outcome struct {
	// Switched is true when the session now belongs to Target.
	Switched   bool
	Target     int64
	Credential session.Credential
	// Redirect is where the client must be sent after a switch.
	Redirect string
}

// Switch executes a submitted switch form. Requests without both switch
// fields are ignored. A token that does not verify for the posted target is
// ignored as well: nothing changes and no redirect is requested.
func (f *Flow) Switch(ctx context.Context, actor Actor, req Request) (Outcome, error) {
	if !req.HasSwitch {
		return Outcome{}, nil
	}

	if !f.tokens.Verify(req.Nonce, actor.ID, actor.SessionID, Purpose(req.TargetID)) {
		f.logger.WarnContext(ctx, "switch token rejected",
			"actor_id", actor.ID,
			"target_id", req.TargetID,
		)
		return Outcome{}, nil
	}

	if err := f.sessions.End(ctx, actor.SessionID); err != nil {
		return Outcome{}, fmt.Errorf("switcher: end session: %w", err)
	}

	cred, err := f.sessions.Begin(ctx, req.TargetID)
	if err != nil {
		return Outcome{}, fmt.Errorf("switcher: begin session for user %d: %w", req.TargetID, err)
	}

	f.logger.InfoContext(ctx, "identity switched",
		"actor_id", actor.ID,
		"target_id", req.TargetID,
	)

	return Outcome{
		Switched:   true,
		Target:     req.TargetID,
		Credential: cred,
		Redirect:   f.AccountURL() + "/",
	}, nil
}
