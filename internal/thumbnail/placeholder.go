package thumbnail

// PlaceholderContentType is the media type of the placeholder preview.
const PlaceholderContentType = "image/svg+xml"

// placeholderSVG stands in for RAW files that carry no decodable preview.
const placeholderSVG = `<svg width="200" height="200" viewBox="0 0 200 200" xmlns="http://www.w3.org/2000/svg">
  <rect width="200" height="200" fill="#f3f4f6"/>
  <circle cx="100" cy="80" r="30" fill="#9b1a37"/>
  <circle cx="100" cy="80" r="20" fill="#ef4444"/>
  <rect x="70" y="75" width="60" height="10" rx="5" fill="#fff" opacity="0.3"/>
  <text x="100" y="140" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold" fill="#374151">RAW FILE</text>
  <text x="100" y="160" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" fill="#6b7280">No Preview Available</text>
</svg>
`

// Placeholder returns the fixed preview used when no embedded image could be
// recovered. Each call returns a fresh copy of the bytes.
func Placeholder() Preview {
	return Preview{
		Data:        []byte(placeholderSVG),
		ContentType: PlaceholderContentType,
		Width:       200,
		Height:      200,
		Placeholder: true,
		Source:      SourcePlaceholder,
	}
}
