package provider

import (
	"fmt"
	"strings"
)

// cdnSizeSuffix is the listing-card image size the provider's CDN serves.
const cdnSizeSuffix = "556x370"

// resolveImageURL normalizes an image reference into an absolute URL, or
// nil when no usable reference exists. Resolution order:
//  1. absolute URL passes through unchanged
//  2. bare filename is prefixed with the CDN base path
//  3. id + image type synthesize <cdn>/<id>-556x370.<type>
//  4. otherwise absent - callers must not render an image at all
func resolveImageURL(raw string, id int64, imageType, cdnBase string) *string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return &raw
	}
	if raw != "" {
		url := cdnBase + "/" + raw
		return &url
	}
	if id > 0 && imageType != "" {
		url := fmt.Sprintf("%s/%d-%s.%s", cdnBase, id, cdnSizeSuffix, imageType)
		return &url
	}
	return nil
}
