package expr

import "context"

// Driver runs one expression tree to completion and hands the aggregated
// Result back to the caller. Each call is independent: no launcher state
// or descriptors are shared across invocations.
type Driver struct {
	launcher Launcher
}

// NewDriver returns a Driver that spawns real processes.
func NewDriver() *Driver {
	return &Driver{launcher: OSLauncher{}}
}

// NewDriverWith returns a Driver that spawns through ln.
func NewDriverWith(ln Launcher) *Driver {
	return &Driver{launcher: ln}
}

// Run executes root with the default stream policy: inherited stdin,
// captured stdout, inherited stderr.
func (d *Driver) Run(ctx context.Context, root Expression) (Result, error) {
	return d.RunWith(ctx, root, Inherit(), Capture(), Inherit())
}

// RunWith executes root with an explicit stream triple. A non-zero exit
// code comes back inside the Result; only a failure to spawn is an
// error. Cancelling ctx kills children still in flight.
func (d *Driver) RunWith(ctx context.Context, root Expression, stdin, stdout, stderr Stream) (Result, error) {
	return root.exec(ctx, d.launcher, stdin, stdout, stderr)
}
