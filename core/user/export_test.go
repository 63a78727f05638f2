package user

// SetJoinHook installs fn to run each time a caller attaches to a degree status computation.
func SetJoinHook(svc *Service, fn func()) {
	svc.joined = fn
}
