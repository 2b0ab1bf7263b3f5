// Package optim scans physical parameters on a grid, for example to find the
// coupling stiffness that produces a wanted beat period.
package optim
