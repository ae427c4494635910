package store

// Storer is a process lifetime store
type Storer interface {
	Init() error
	Close() error
}
