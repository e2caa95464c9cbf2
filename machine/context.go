package machine

import "maps"

// Context carries auxiliary key-value data alongside the active state.
// It is owned by the machine: callers only ever receive copies, and the
// machine mutates it exclusively as part of a successful transition by
// shallow-merging the attempt's partial context over the existing one.
type Context map[string]any

// Clone returns an independent shallow copy. Cloning a nil Context yields
// an empty, non-nil one.
func (c Context) Clone() Context {
	clone := make(Context, len(c))
	maps.Copy(clone, c)

	return clone
}

// merged computes the shallow merge of partial over c: absent keys keep
// their current values, provided keys overwrite. Neither input is mutated.
func (c Context) merged(partial Context) Context {
	out := c.Clone()
	maps.Copy(out, partial)

	return out
}

// GetString retrieves a string value from the context.
func (c Context) GetString(key string) (string, bool) {
	val, ok := c[key]
	if !ok {
		return "", false
	}

	str, ok := val.(string)

	return str, ok
}

// GetBool retrieves a boolean value from the context.
func (c Context) GetBool(key string) (bool, bool) {
	val, ok := c[key]
	if !ok {
		return false, false
	}

	b, ok := val.(bool)

	return b, ok
}

// GetInt retrieves an integer value from the context.
func (c Context) GetInt(key string) (int, bool) {
	val, ok := c[key]
	if !ok {
		return 0, false
	}

	i, ok := val.(int)

	return i, ok
}
