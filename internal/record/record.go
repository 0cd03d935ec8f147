// Package record defines the union-type Record that progresses through
// the indexer's three stages (Discovered -> FileInfo -> Full), modeled
// as a single flat struct with optional fields rather than a subclass
// hierarchy.
package record

import "time"

// Stage names the indexing stage a Record currently occupies.
type Stage int

const (
	// StageDiscovered means the record was created by the directory walk
	// and carries no stat results.
	StageDiscovered Stage = iota
	// StageFileInfo means stat()+MIME inference has run.
	StageFileInfo
	// StageFull means metadata extraction has completed.
	StageFull
)

func (s Stage) String() string {
	switch s {
	case StageDiscovered:
		return "discovered"
	case StageFileInfo:
		return "fileinfo"
	case StageFull:
		return "full"
	default:
		return "unknown"
	}
}

// Dimensions is pixel width/height, shared by images and video.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Location is a GPS coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ImageMetadata carries EXIF-derived fields for a still image.
type ImageMetadata struct {
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
	DateTaken     *time.Time  `json:"date_taken,omitempty"`
	Location      *Location   `json:"location,omitempty"`
	CameraMake    string      `json:"camera_make,omitempty"`
	CameraModel   string      `json:"camera_model,omitempty"`
	ExposureTime  string      `json:"exposure_time,omitempty"`
	Aperture      string      `json:"aperture,omitempty"`
	ISO           int         `json:"iso,omitempty"`
	FocalLength   string      `json:"focal_length,omitempty"`
	Lens          string      `json:"lens,omitempty"`
	Rating        int         `json:"rating,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

// VideoMetadata carries codec/duration fields for a video file.
type VideoMetadata struct {
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Duration   float64     `json:"duration,omitempty"` // seconds
	FrameRate  float64     `json:"framerate,omitempty"`
	VideoCodec string      `json:"video_codec,omitempty"`
	AudioCodec string      `json:"audio_codec,omitempty"`
}

// Metadata is the Full-stage payload: exactly one of Image or Video is
// set, depending on the record's MIME family.
type Metadata struct {
	Image *ImageMetadata `json:"image,omitempty"`
	Video *VideoMetadata `json:"video,omitempty"`
}

// Record is the union-type index entry keyed by RelativePath. Which
// fields are meaningful depends on Stage(): Discovered records carry
// only RelativePath and MimeType; FileInfo adds Size/dates; Full adds
// Directory/Name/Metadata. LastIndexedAt is nil iff the record is at
// StageDiscovered — this is the discriminant field.
type Record struct {
	RelativePath  string     `json:"relative_path"`
	Directory     string     `json:"directory,omitempty"`
	Name          string     `json:"name,omitempty"`
	Size          int64      `json:"size,omitempty"`
	MimeType      string     `json:"mime_type,omitempty"`
	DateCreated   *time.Time `json:"date_created,omitempty"`
	DateModified  *time.Time `json:"date_modified,omitempty"`
	Metadata      *Metadata  `json:"metadata,omitempty"`
	LastIndexedAt *time.Time `json:"last_indexed_at"`

	// path is the legacy field name migrated into RelativePath on load.
	// It is never populated on write; indexstore handles the migration
	// at unmarshal time.
	Path string `json:"path,omitempty"`
}

// Stage reports which indexing stage the record occupies.
func (r *Record) Stage() Stage {
	if r.LastIndexedAt == nil {
		return StageDiscovered
	}
	if r.Metadata == nil && r.Directory == "" && r.Name == "" {
		return StageFileInfo
	}
	return StageFull
}

// IsFull reports whether the record has completed metadata extraction.
// Queries must exclude records for which this is false.
func (r *Record) IsFull() bool {
	return r.Stage() == StageFull
}

// DateTaken resolves the best-known capture time: EXIF date-taken, then
// the file's creation time, then its modification time. Returns nil if
// none are available.
func (r *Record) DateTaken() *time.Time {
	if r.Metadata != nil && r.Metadata.Image != nil && r.Metadata.Image.DateTaken != nil {
		return r.Metadata.Image.DateTaken
	}
	if r.DateCreated != nil {
		return r.DateCreated
	}
	return r.DateModified
}

// NewDiscovered creates a record at the Discovered stage for a freshly
// walked path.
func NewDiscovered(relativePath string, mimeType string) *Record {
	return &Record{
		RelativePath: relativePath,
		MimeType:     mimeType,
	}
}
