// Package inferring implements the type lattice used by whole-program type inference.
//
// A TypeData is a node of a recursive structural type: a primitive tag, an optional class,
// a set of monotone flags and children addressed by Key. The lattice join (Worker.SetLCA) is
// applied repeatedly by a driver until no node changes generation, which is the fixpoint.
//
// Nodes of one type live in an arena owned by whoever holds the root TypeData. Reads are
// methods on TypeData, while every mutation goes through a Worker, which carries the
// generation that changed nodes get stamped with. A Worker and the nodes it mutates must
// not be used from more than one goroutine at a time; the Interner, Classes and Clock
// shared through a Universe are safe for concurrent use.
package inferring
