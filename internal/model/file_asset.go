package model

import (
	"errors"
	"path"
	"strconv"
	"strings"
)

// FileAsset — метаданные загруженного файла и ссылка на него в хранилище.
type FileAsset struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	StoragePath string `json:"storagePath"`
	Size        string `json:"size"`
	MimeType    string `json:"mimeType"`
	Timestamps
}

// Bytes parses the string-encoded size.
func (f FileAsset) Bytes() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(f.Size), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative file size")
	}
	return n, nil
}

// PreviewKind tells the presentation layer how a file can be shown.
type PreviewKind string

const (
	PreviewImage    PreviewKind = "image"
	PreviewPDF      PreviewKind = "pdf"
	PreviewVideo    PreviewKind = "video"
	PreviewAudio    PreviewKind = "audio"
	PreviewText     PreviewKind = "text"
	PreviewDownload PreviewKind = "download"
)

var previewByExt = map[string]PreviewKind{
	".jpg": PreviewImage, ".jpeg": PreviewImage, ".png": PreviewImage, ".gif": PreviewImage,
	".webp": PreviewImage, ".svg": PreviewImage, ".bmp": PreviewImage,
	".pdf": PreviewPDF,
	".mp4": PreviewVideo, ".webm": PreviewVideo, ".mov": PreviewVideo,
	".mp3": PreviewAudio, ".wav": PreviewAudio, ".ogg": PreviewAudio,
	".txt": PreviewText, ".md": PreviewText, ".csv": PreviewText,
}

// Preview: сначала расширение имени файла (или пути), затем MIME-тип.
func (f FileAsset) Preview() PreviewKind {
	name := f.Filename
	if name == "" {
		name = f.StoragePath
	}
	if k, ok := previewByExt[strings.ToLower(path.Ext(name))]; ok {
		return k
	}
	mt := strings.ToLower(f.MimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return PreviewImage
	case mt == "application/pdf":
		return PreviewPDF
	case strings.HasPrefix(mt, "video/"):
		return PreviewVideo
	case strings.HasPrefix(mt, "audio/"):
		return PreviewAudio
	case strings.HasPrefix(mt, "text/"):
		return PreviewText
	}
	return PreviewDownload
}
