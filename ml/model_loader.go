package ml

import (
	"fmt"
)

const (
	ModelTypeRandomForest   = "random_forest"
	ModelTypeRegressionTree = "regression_tree"
)

// LoadModel reads a trained model of the given type from path.
// A missing file is reported with an error wrapping fs.ErrNotExist.
func LoadModel(modelType, path string) (MLModel, error) {
	var model MLModel
	switch modelType {
	case ModelTypeRandomForest, "":
		model = &RandomForest{}
	case ModelTypeRegressionTree:
		model = &RegressionTree{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}
