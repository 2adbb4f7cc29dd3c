package config

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidBootstrap = goerr.New("invalid bootstrap configuration")
	ErrUnknownSection   = goerr.New("unknown section in bootstrap configuration")
)
