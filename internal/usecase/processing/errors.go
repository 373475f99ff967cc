package processing

import "errors"

var (
	errContextRequired    = errors.New("context is required")
	errRepositoryRequired = errors.New("processing issue repository is required")
	errUnitOfWorkRequired = errors.New("processing unit of work is required")
)
