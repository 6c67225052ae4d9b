package chain

import (
	"github.com/rawblock/pbmx/idhash"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/serde"
)

const stackIdTag = "pbmx-stack"

// StackId derives a stack's content-addressed identifier: two stacks with
// identical masks always share an Id, regardless of which payload
// produced them.
func StackId(s mask.Stack) Id {
	w := serde.NewWriter()
	putStack(w, s)
	return Id(idhash.Sum(stackIdTag, w.Bytes()))
}
