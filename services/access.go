package services

import "volunteerhub/model"

// requireRole fails with ErrRoleRequired while the caller has no role yet, and with
// ErrForbidden when the role is not one of roles.
func requireRole(sess *model.Session, reason string, roles ...model.Role) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	if sess.Role() == "" {
		return ErrRoleRequired
	}
	if !sess.HasRole(roles...) {
		return forbidden(reason)
	}
	return nil
}

func requireCreator(ev *model.Event, sess *model.Session) error {
	if !ev.IsCreator(sess.Email) {
		return forbidden("only the event creator can manage this event")
	}
	return nil
}
