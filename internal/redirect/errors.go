package redirect

import "errors"

// ErrEmptyDestination возвращается, когда параметр dest пуст или отсутствует
var ErrEmptyDestination = errors.New("empty destination")

// ErrInvalidDestination возвращается, когда dest не является абсолютным http(s) URL
var ErrInvalidDestination = errors.New("invalid destination URL")
