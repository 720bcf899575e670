package ml

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultEstimators = 100
	DefaultSeed       = 42
)

// RandomForest averages regression trees, each grown on a bootstrap sample of the training rows.
//
// Every tree draws from its own source, seeded from Seed before any tree is fit, so the trained
// forest does not depend on how many workers fit it or in which order they finish.
type RandomForest struct {
	NEstimators int
	Seed        uint64
	Params      TreeParams
	// Workers caps concurrent tree fits; zero means GOMAXPROCS.
	Workers int

	trees    []*RegressionTree
	features int
}

type forestArtifact struct {
	ModelType    string       `json:"model_type"`
	NEstimators  int          `json:"n_estimators"`
	Seed         uint64       `json:"seed"`
	FeatureNames []string     `json:"feature_names"`
	Features     int          `json:"features"`
	Params       TreeParams   `json:"params"`
	Trees        [][]TreeNode `json:"trees"`
}

func NewRandomForest(nEstimators int, seed uint64, params TreeParams) *RandomForest {
	return &RandomForest{
		NEstimators: nEstimators,
		Seed:        seed,
		Params:      params,
	}
}

func (f *RandomForest) Train(ctx context.Context, features [][]float64, targets []float64) error {
	width, err := checkDataset(features, targets)
	if err != nil {
		return err
	}
	if f.NEstimators <= 0 {
		f.NEstimators = DefaultEstimators
	}
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	seeds := make([]uint64, f.NEstimators)
	master := rand.New(rand.NewSource(f.Seed))
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*RegressionTree, f.NEstimators)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tree := NewRegressionTree(f.Params)
			tree.fit(features, targets, bootstrap(len(features), seeds[i]), width)
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fit forest: %w", err)
	}

	f.trees = trees
	f.features = width
	return nil
}

func (f *RandomForest) Predict(features []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, ErrNotTrained
	}
	if len(features) != f.features {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrFeatureMismatch, f.features, len(features))
	}
	var sum float64
	for _, tree := range f.trees {
		value, err := tree.Predict(features)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	return sum / float64(len(f.trees)), nil
}

func (f *RandomForest) Trees() int {
	return len(f.trees)
}

func (f *RandomForest) Save(path string) error {
	if len(f.trees) == 0 {
		return ErrNotTrained
	}
	trees := make([][]TreeNode, len(f.trees))
	for i, tree := range f.trees {
		trees[i] = tree.nodes
	}
	return writeArtifact(path, forestArtifact{
		ModelType:    ModelTypeRandomForest,
		NEstimators:  f.NEstimators,
		Seed:         f.Seed,
		FeatureNames: FeatureNames(),
		Features:     f.features,
		Params:       f.Params,
		Trees:        trees,
	})
}

func (f *RandomForest) Load(path string) error {
	var artifact forestArtifact
	if err := readArtifact(path, &artifact); err != nil {
		return err
	}
	if artifact.ModelType != "" && artifact.ModelType != ModelTypeRandomForest {
		return fmt.Errorf("load %s: artifact holds %q, not %q", path, artifact.ModelType, ModelTypeRandomForest)
	}
	if len(artifact.Trees) == 0 {
		return fmt.Errorf("load %s: %w", path, errors.New("forest has no trees"))
	}
	trees := make([]*RegressionTree, len(artifact.Trees))
	for i, nodes := range artifact.Trees {
		if err := validateNodes(nodes); err != nil {
			return fmt.Errorf("load %s: tree %d: %w", path, i, err)
		}
		trees[i] = &RegressionTree{Params: artifact.Params, nodes: nodes, features: artifact.Features}
	}
	f.NEstimators = artifact.NEstimators
	f.Seed = artifact.Seed
	f.Params = artifact.Params
	f.features = artifact.Features
	f.trees = trees
	return nil
}

// bootstrap draws n row indices with replacement.
func bootstrap(n int, seed uint64) []int {
	rng := rand.New(rand.NewSource(seed))
	indices := make([]int, n)
	for i := range indices {
		indices[i] = rng.Intn(n)
	}
	return indices
}
