package vergraph

import "github.com/sirupsen/logrus"

// log is used the way the teacher's unexported debug(...) helper is used:
// sparingly, only on the paths worth narrating after the fact (capacity
// eviction, root replacement, merges). It is never on Put's allocation path
// for the common case.
var log = logrus.WithField("component", "vergraph")
