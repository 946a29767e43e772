package dal

import (
	"github.com/leapstack-labs/leapdal/pkg/core"
)

// Input is what Create and Update accept: either a typed entity or a raw
// document fragment. Build one with Entity or Fragment.
type Input interface {
	input()
}

type entityInput struct {
	entity core.Entity
}

type fragmentInput struct {
	doc core.Document
}

func (entityInput) input()   {}
func (fragmentInput) input() {}

// Entity wraps a typed entity as an Input.
func Entity(e core.Entity) Input {
	return entityInput{entity: e}
}

// Fragment wraps a raw document as an Input. On update only the fields
// present in doc are changed.
func Fragment(doc core.Document) Input {
	return fragmentInput{doc: doc}
}
