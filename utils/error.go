package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidArgument marks malformed or unrecognized caller input
// (unknown target_type, non-positive payment amount, empty return lines).
var ErrorInvalidArgument = errors.New("invalid argument")

// ErrorBusinessRule marks requests that are well-formed but violate a
// business invariant (e.g. crediting more than the returnable quantity).
var ErrorBusinessRule = errors.New("business rule violation")
