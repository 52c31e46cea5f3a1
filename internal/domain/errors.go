package domain

import "errors"

// ErrNotFound возвращается, когда запись не существует или принадлежит
// другому пользователю — снаружи эти случаи неразличимы
var ErrNotFound = errors.New("not found")
