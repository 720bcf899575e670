package ml

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotTrained      = errors.New("model not trained")
	ErrEmptyDataset    = errors.New("features or targets empty")
	ErrSizeMismatch    = errors.New("features and targets size mismatch")
	ErrFeatureMismatch = errors.New("feature count mismatch")
)

// TreeParams bounds how far a regression tree grows.
type TreeParams struct {
	// MaxDepth of zero lets the tree grow until leaves are pure.
	MaxDepth        int `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf" yaml:"min_samples_leaf"`
}

func (p TreeParams) withDefaults() TreeParams {
	if p.MaxDepth < 0 {
		p.MaxDepth = 0
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}
	return p
}

// RegressionTree is a CART tree fit on squared error. Nodes are stored flat;
// children are referenced by index.
type RegressionTree struct {
	Params   TreeParams
	nodes    []TreeNode
	features int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	Samples    int     `json:"samples"`
	IsLeaf     bool    `json:"is_leaf"`
}

type treeArtifact struct {
	ModelType string     `json:"model_type"`
	Features  int        `json:"features"`
	Params    TreeParams `json:"params"`
	Nodes     []TreeNode `json:"nodes"`
}

func NewRegressionTree(params TreeParams) *RegressionTree {
	return &RegressionTree{Params: params}
}

func (t *RegressionTree) Train(ctx context.Context, features [][]float64, targets []float64) error {
	width, err := checkDataset(features, targets)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	indices := make([]int, len(features))
	for i := range indices {
		indices[i] = i
	}
	t.fit(features, targets, indices, width)
	return nil
}

// fit grows the tree on the rows selected by indices. Indices may repeat.
func (t *RegressionTree) fit(features [][]float64, targets []float64, indices []int, width int) {
	b := treeBuilder{
		features: features,
		targets:  targets,
		params:   t.Params.withDefaults(),
		width:    width,
	}
	t.nodes = b.buildNode(indices, 0)
	t.features = width
}

func (t *RegressionTree) Predict(features []float64) (float64, error) {
	if len(t.nodes) == 0 {
		return 0, ErrNotTrained
	}
	if t.features > 0 && len(features) != t.features {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrFeatureMismatch, t.features, len(features))
	}
	idx := 0
	for {
		node := t.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *RegressionTree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		node := t.nodes[idx]
		if node.IsLeaf {
			return 0
		}
		return 1 + max(walk(node.LeftChild), walk(node.RightChild))
	}
	return walk(0)
}

func (t *RegressionTree) NodeCount() int {
	return len(t.nodes)
}

func (t *RegressionTree) Save(path string) error {
	if len(t.nodes) == 0 {
		return ErrNotTrained
	}
	return writeArtifact(path, treeArtifact{
		ModelType: ModelTypeRegressionTree,
		Features:  t.features,
		Params:    t.Params,
		Nodes:     t.nodes,
	})
}

func (t *RegressionTree) Load(path string) error {
	var artifact treeArtifact
	if err := readArtifact(path, &artifact); err != nil {
		return err
	}
	if err := validateNodes(artifact.Nodes); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	t.Params = artifact.Params
	t.features = artifact.Features
	t.nodes = artifact.Nodes
	return nil
}

type treeBuilder struct {
	features [][]float64
	targets  []float64
	params   TreeParams
	width    int
}

func (b *treeBuilder) buildNode(indices []int, depth int) []TreeNode {
	value := b.mean(indices)
	leaf := []TreeNode{{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      value,
		Samples:    len(indices),
		IsLeaf:     true,
	}}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return leaf
	}
	if len(indices) < b.params.MinSamplesSplit || b.isPure(indices) {
		return leaf
	}

	bestFeature, threshold, ok := b.findBestSplit(indices)
	if !ok {
		return leaf
	}

	left, right := b.partition(indices, bestFeature, threshold)
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	leftNodes := b.buildNode(left, depth+1)
	rightNodes := b.buildNode(right, depth+1)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		Value:      value,
		Samples:    len(indices),
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftChildren(leftNodes, 1)...)
	nodes = append(nodes, shiftChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// findBestSplit scans every feature for the threshold that minimizes the summed squared
// error of both children. Candidate thresholds sit halfway between consecutive distinct values.
func (b *treeBuilder) findBestSplit(indices []int) (int, float64, bool) {
	n := len(indices)
	var total float64
	for _, idx := range indices {
		total += b.targets[idx]
	}

	bestFeature := -1
	bestThreshold := 0.0
	// Maximizing sumL²/nL + sumR²/nR is the same as minimizing the children's squared error.
	bestScore := total * total / float64(n)
	minLeaf := b.params.MinSamplesLeaf

	sorted := make([]int, n)
	for featureIdx := 0; featureIdx < b.width; featureIdx++ {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.features[sorted[i]][featureIdx] < b.features[sorted[j]][featureIdx]
		})

		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += b.targets[sorted[i]]
			current := b.features[sorted[i]][featureIdx]
			next := b.features[sorted[i+1]][featureIdx]
			if current == next {
				continue
			}
			leftCount := i + 1
			rightCount := n - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(leftCount) + rightSum*rightSum/float64(rightCount)
			if score > bestScore+1e-9 {
				bestScore = score
				bestFeature = featureIdx
				bestThreshold = current + (next-current)/2
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (b *treeBuilder) partition(indices []int, featureIdx int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if b.features[idx][featureIdx] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

func (b *treeBuilder) mean(indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, idx := range indices {
		sum += b.targets[idx]
	}
	return sum / float64(len(indices))
}

func (b *treeBuilder) isPure(indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := b.targets[indices[0]]
	for _, idx := range indices[1:] {
		if b.targets[idx] != first {
			return false
		}
	}
	return true
}

// shiftChildren rebases a subtree's child indices after it is appended at offset.
func shiftChildren(nodes []TreeNode, offset int) []TreeNode {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
	return nodes
}

func checkDataset(features [][]float64, targets []float64) (int, error) {
	if len(features) == 0 || len(targets) == 0 {
		return 0, ErrEmptyDataset
	}
	if len(features) != len(targets) {
		return 0, ErrSizeMismatch
	}
	width := len(features[0])
	if width == 0 {
		return 0, ErrEmptyDataset
	}
	for i, row := range features {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d values, expected %d", ErrFeatureMismatch, i, len(row), width)
		}
	}
	return width, nil
}

func validateNodes(nodes []TreeNode) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) || node.RightChild <= i || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d has invalid children", i)
		}
	}
	return nil
}
