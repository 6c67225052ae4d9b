// Command pbmxdemo runs a small two-party session end to end: key
// exchange, opening a stack of tokens, masking it under the joint key,
// shuffling it, and jointly revealing the result — entirely in memory, to
// exercise the toolkit the way a real multi-party session would drive it.
package main

import (
	"log"

	"github.com/rawblock/pbmx/chain"
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/state"
	"github.com/rawblock/pbmx/vtmf"
)

func main() {
	log.Println("pbmxdemo: starting two-party session")

	alice, err := keys.Random(nil)
	if err != nil {
		log.Fatalf("generating alice's key: %v", err)
	}
	bob, err := keys.Random(nil)
	if err != nil {
		log.Fatalf("generating bob's key: %v", err)
	}

	aliceState := state.New(alice)
	bobState := state.New(bob)

	// Both parties fold every block into their own State, so chain
	// delivery order never matters; apply is the replay boundary each
	// party's copy of the chain passes through.
	apply := func(b *chain.Block) {
		if !aliceState.AddBlock(b) {
			log.Fatalf("pbmxdemo: alice rejected block: %+v", b.Payloads())
		}
		if !bobState.AddBlock(b) {
			log.Fatalf("pbmxdemo: bob rejected block: %+v", b.Payloads())
		}
	}

	aliceBlock, err := aliceState.Chain.BuildBlock().
		AddPayload(chain.PublishKeyPayload{Name: "alice", Key: alice.PublicKey()}).
		Build(alice)
	if err != nil {
		log.Fatalf("building alice's publish-key block: %v", err)
	}
	apply(aliceBlock)

	bobBlock, err := bobState.Chain.BuildBlock().
		AddPayload(chain.PublishKeyPayload{Name: "bob", Key: bob.PublicKey()}).
		Build(bob)
	if err != nil {
		log.Fatalf("building bob's publish-key block: %v", err)
	}
	apply(bobBlock)

	log.Printf("pbmxdemo: joint key combines %d parties", aliceState.Vtmf.Parties())

	// Alice opens a 5-token stack in the clear, then immediately masks it
	// under the joint key: remasking an open mask (identity, p*G) is
	// exactly the masking operation, since Remask's algebra is agnostic
	// to whether its input already carries a blinding factor.
	const n = 5
	open := make(mask.Stack, n)
	for i := 0; i < n; i++ {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		open[i] = mask.Open(p)
	}
	openBlock, err := aliceState.Chain.BuildBlock().
		AddPayload(chain.OpenStackPayload{Stack: open}).
		Build(alice)
	if err != nil {
		log.Fatalf("building open-stack block: %v", err)
	}
	apply(openBlock)
	openId := chain.StackId(open)
	log.Printf("pbmxdemo: opened stack %s with %d tokens", openId, n)

	masked := make(mask.Stack, n)
	proofs := make([]vtmf.MaskProof, n)
	for i, m := range open {
		c, _, proof, err := aliceState.Vtmf.Remask(m)
		if err != nil {
			log.Fatalf("masking token %d: %v", i, err)
		}
		masked[i], proofs[i] = c, proof
	}
	maskBlock, err := aliceState.Chain.BuildBlock().
		AddPayload(chain.MaskStackPayload{Source: openId, Stack: masked, Proofs: proofs}).
		Build(alice)
	if err != nil {
		log.Fatalf("building mask-stack block: %v", err)
	}
	apply(maskBlock)
	maskedId := chain.StackId(masked)

	pi, err := perm.Shuffles{N: n}.Sample(nil)
	if err != nil {
		log.Fatalf("sampling shuffle: %v", err)
	}
	shuffled, _, shuffleProof, err := bobState.Vtmf.MaskShuffle(masked, pi)
	if err != nil {
		log.Fatalf("shuffling stack: %v", err)
	}
	shuffleBlock, err := bobState.Chain.BuildBlock().
		AddPayload(chain.ShuffleStackPayload{Source: maskedId, Stack: shuffled, Proof: shuffleProof}).
		Build(bob)
	if err != nil {
		log.Fatalf("building shuffle-stack block: %v", err)
	}
	apply(shuffleBlock)
	shuffledId := chain.StackId(shuffled)
	log.Printf("pbmxdemo: bob shuffled stack %s into %s", maskedId, shuffledId)

	// Both parties publish their unmask shares for the shuffled stack;
	// once every keyholder's share is in, anyone can recover the tokens.
	aliceShares := make([]vtmf.SecretShare, n)
	aliceProofs := make([]vtmf.SecretShareProof, n)
	for i, m := range shuffled {
		d, proof, err := aliceState.Vtmf.UnmaskShare(m)
		if err != nil {
			log.Fatalf("alice sharing token %d: %v", i, err)
		}
		aliceShares[i], aliceProofs[i] = d, proof
	}
	aliceShareBlock, err := aliceState.Chain.BuildBlock().
		AddPayload(chain.PublishSharesPayload{Stack: shuffledId, Shares: aliceShares, Proofs: aliceProofs}).
		Build(alice)
	if err != nil {
		log.Fatalf("building alice's publish-shares block: %v", err)
	}
	apply(aliceShareBlock)

	bobShares := make([]vtmf.SecretShare, n)
	bobProofs := make([]vtmf.SecretShareProof, n)
	for i, m := range shuffled {
		d, proof, err := bobState.Vtmf.UnmaskShare(m)
		if err != nil {
			log.Fatalf("bob sharing token %d: %v", i, err)
		}
		bobShares[i], bobProofs[i] = d, proof
	}
	bobShareBlock, err := bobState.Chain.BuildBlock().
		AddPayload(chain.PublishSharesPayload{Stack: shuffledId, Shares: bobShares, Proofs: bobProofs}).
		Build(bob)
	if err != nil {
		log.Fatalf("building bob's publish-shares block: %v", err)
	}
	apply(bobShareBlock)

	for i, m := range shuffled {
		combined, ok := aliceState.Stacks.Secret(m)
		if !ok {
			log.Fatalf("token %d: no combined share on record", i)
		}
		revealed := aliceState.Vtmf.Unmask(m, combined)
		log.Printf("pbmxdemo: token %d reveals to %x", i, aliceState.Vtmf.UnmaskOpen(revealed).Bytes())
	}

	log.Printf("pbmxdemo: chain now has %d blocks across %d heads (merged=%v)",
		aliceState.Chain.Count(), len(aliceState.Chain.Heads()), aliceState.Chain.IsMerged())
}
