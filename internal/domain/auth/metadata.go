package auth

// PasswordSet reports whether the identity has completed password
// setup. Providers stamp the flag in different namespaces depending
// on how the account was created, so both are consulted; any truthy
// shape counts.
func PasswordSet(id Identity) bool {
	return truthy(id.UserMetadata[PasswordSetKey]) || truthy(id.AppMetadata[PasswordSetKey])
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true"
	default:
		return false
	}
}
