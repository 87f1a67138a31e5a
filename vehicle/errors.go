package vehicle

import "github.com/pkg/errors"

var errInsufficientInputs = errors.New("vehicle state update requires both localization and chassis")
