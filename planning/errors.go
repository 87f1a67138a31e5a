package planning

import "github.com/pkg/errors"

var errCollisionCheckFailed = errors.New("collision check failed")
