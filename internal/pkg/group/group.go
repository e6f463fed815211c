//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package group is the worker-group layer of the benchmark: rank/size
// discovery, a barrier, and point-to-point float vectors, which is all the
// collective machinery the read loop and the timing gather need. The
// production implementation runs on MPI; Local wires the same interface
// from in-process channels so the rest of the code can be exercised
// without a launcher.
package group

import (
	mpi "github.com/sbromberger/gompi"
)

// Group is one worker's view of the worker group.
type Group interface {
	Rank() int
	Size() int

	// Barrier blocks until every worker of the group has entered it.
	Barrier()

	// SendFloat64s sends a float vector to one worker.
	SendFloat64s(vals []float64, dest, tag int)

	// RecvFloat64s blocks until a float vector with the given tag arrives
	// from the given worker.
	RecvFloat64s(source, tag int) []float64
}

// World is the MPI-backed group spanning all launched workers.
type World struct {
	comm *mpi.Communicator
}

// Init starts MPI and returns the world group. Every worker must call it
// exactly once, before any other group operation.
func Init() *World {
	mpi.Start(true)
	return &World{comm: mpi.NewCommunicator(nil)}
}

// Close shuts MPI down. No group operation may follow it.
func (w *World) Close() {
	mpi.Stop()
}

func (w *World) Rank() int {
	return w.comm.Rank()
}

func (w *World) Size() int {
	return w.comm.Size()
}

func (w *World) Barrier() {
	w.comm.Barrier()
}

func (w *World) SendFloat64s(vals []float64, dest, tag int) {
	w.comm.SendFloat64s(vals, dest, tag)
}

func (w *World) RecvFloat64s(source, tag int) []float64 {
	vals, _ := w.comm.RecvFloat64s(source, tag)
	return vals
}
