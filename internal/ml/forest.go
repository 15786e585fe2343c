// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestConfig contains configuration for the random forest regressor.
type ForestConfig struct {
	// Trees is the number of bootstrap trees.
	Trees int

	// MaxDepth bounds the depth of every tree. The root is depth 0.
	MaxDepth int

	// MinLeaf is the minimum number of samples in a leaf.
	MinLeaf int

	// Seed drives bootstrap sampling. Each tree draws its own seed from it
	// in index order, so results do not depend on scheduling.
	Seed int64

	// Workers bounds parallel tree fitting. If <= 0, uses GOMAXPROCS.
	Workers int
}

// DefaultForestConfig returns the standard forest configuration.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:    100,
		MaxDepth: 10,
		MinLeaf:  1,
		Seed:     42,
	}
}

// Forest is a bagged ensemble of CART regression trees. Predictions are the
// mean over trees.
type Forest struct {
	Trees    []Tree
	Features int
}

// Tree is a regression tree stored as a flat node slice; node 0 is the root.
type Tree struct {
	Nodes []Node
}

// Node is a split or a leaf. Rows with x[Feature] <= Threshold go Left.
type Node struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      int
	Right     int
}

// FitForest trains a forest on x and y.
func FitForest(ctx context.Context, cfg ForestConfig, x [][]float64, y []float64) (*Forest, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("forest fit: %d rows for %d targets", n, len(y))
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinLeaf <= 0 {
		cfg.MinLeaf = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	master := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic sampling, not security sensitive
	seeds := make([]int64, cfg.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	forest := &Forest{
		Trees:    make([]Tree, cfg.Trees),
		Features: len(x[0]),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i])) //nolint:gosec // deterministic sampling
			sample := make([]int, n)
			for k := range sample {
				sample[k] = rng.Intn(n)
			}
			b := &treeBuilder{x: x, y: y, maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf}
			b.grow(sample, 0)
			forest.Trees[i] = Tree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forest fit: %w", err)
	}

	return forest, nil
}

// Predict averages tree outputs for each row.
func (f *Forest) Predict(x [][]float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("%w: empty forest", ErrModelUnavailable)
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != f.Features {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureMismatch, i, len(row), f.Features)
		}
		var sum float64
		for t := range f.Trees {
			sum += f.Trees[t].predict(row)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out, nil
}

func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		node := &t.Nodes[i]
		if node.Leaf {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	nodes    []Node
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Leaf: true, Value: b.mean(idx)})

	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

// bestSplit finds the split maximizing the reduction in squared error.
// Thresholds are midpoints between adjacent distinct values.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	parentScore := total * total / float64(n)
	if totalSq-parentScore <= 1e-12 {
		return 0, 0, false
	}

	best := parentScore
	sorted := make([]int, n)
	for f := range b.x[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += b.y[sorted[k]]
			nl := k + 1
			nr := n - nl
			if nl < b.minLeaf || nr < b.minLeaf {
				continue
			}
			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if score > best+1e-12 {
				best = score
				feature = f
				threshold = lo + (hi-lo)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b *treeBuilder) mean(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}
