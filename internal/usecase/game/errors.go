package game

import (
	"github.com/pkg/errors"
)

var ErrUnknownCommand = errors.New("unknown command")
