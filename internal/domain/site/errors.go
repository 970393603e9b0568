package site

import "errors"

var ErrSiteNotFound = errors.New("Site not found")
