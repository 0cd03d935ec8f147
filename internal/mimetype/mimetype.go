// Package mimetype maps file extensions to MIME types and classifies
// media family (image vs. video), the way the teacher's
// ffmpeg.IsVideoFile classified files by a fixed extension set.
package mimetype

import "strings"

var byExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",

	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".m2ts": "video/mp2t",
	".ts":   "video/mp2t",
	".3gp":  "video/3gpp",

	".txt": "text/plain",
}

const defaultMIME = "application/octet-stream"

// ForPath returns the inferred MIME type for a path based on its
// extension, or the default octet-stream type if unknown.
func ForPath(p string) string {
	ext := extOf(p)
	if mt, ok := byExt[ext]; ok {
		return mt
	}
	return defaultMIME
}

func extOf(p string) string {
	i := strings.LastIndexByte(p, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(p[i:])
}

// IsImage reports whether the MIME type names an image family.
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// IsVideo reports whether the MIME type names a video family.
func IsVideo(mime string) bool {
	return strings.HasPrefix(mime, "video/")
}

// IsHeicLike reports whether the MIME type is one of the HEIC/HEIF
// family that commonly needs a web-safe format conversion.
func IsHeicLike(mime string) bool {
	return mime == "image/heic" || mime == "image/heif"
}
