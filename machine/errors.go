package machine

import "errors"

// Configuration errors. Transition failures are never surfaced as errors;
// these cover YAML config loading and validation only.
var (
	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrRuleFromRequired indicates that a rule's from set is empty.
	ErrRuleFromRequired = errors.New("rule from set must not be empty")
	// ErrRuleToRequired indicates that a rule's to set is empty.
	ErrRuleToRequired = errors.New("rule to set must not be empty")
)
