package clientip

import "errors"

var ErrInvalidPrefix = errors.New("clientip: invalid address or CIDR")
