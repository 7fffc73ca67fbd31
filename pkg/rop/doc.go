// Package rop defines Result, the railway value that every operation in this
// module produces: success with a value, empty, failure, or cancel.
package rop
