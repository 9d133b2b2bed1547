package container

// Options contains configuration for a command executed in a Node.
type Options struct {
	// Environment variables
	Env []string
	// If blank, defaults to the image's UIDGID.
	User string
}
