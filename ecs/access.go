package ecs

// Access tracks borrows of a group of views that can reach the same components.
// Any number of shared borrows may be open at once; an exclusive borrow requires that
// nothing else is open. Violations panic: they are programming errors (for example writing
// through a set from inside its own iteration callback), not contention. Access is not a
// lock and is meant to be used from a single goroutine.
type Access struct {
	name      string
	shared    int
	exclusive bool
}

// NewAccess creates an Access whose panics mention name
func NewAccess(name string) *Access {
	return &Access{name: name}
}

// AcquireShared opens a shared borrow
func (a *Access) AcquireShared() {
	if a.exclusive {
		panic(a.name + ": shared access requested while exclusively borrowed")
	}
	a.shared++
}

// ReleaseShared closes a shared borrow
func (a *Access) ReleaseShared() {
	if a.shared == 0 {
		panic(a.name + ": shared access released without being acquired")
	}
	a.shared--
}

// AcquireExclusive opens the exclusive borrow
func (a *Access) AcquireExclusive() {
	if a.exclusive || a.shared > 0 {
		panic(a.name + ": exclusive access requested while already borrowed")
	}
	a.exclusive = true
}

// ReleaseExclusive closes the exclusive borrow
func (a *Access) ReleaseExclusive() {
	if !a.exclusive {
		panic(a.name + ": exclusive access released without being acquired")
	}
	a.exclusive = false
}

// Borrowed reports whether any borrow is open
func (a *Access) Borrowed() bool {
	return a.exclusive || a.shared > 0
}
