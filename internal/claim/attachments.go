package claim

import (
	"regexp"
	"strconv"
)

// UploadedFile is a receipt that has already been written to storage.
// FieldName is the multipart field it arrived under.
type UploadedFile struct {
	FieldName    string
	OriginalName string
	StoredPath   string
	Size         int64
	MimeType     string
}

// item_<N>_attachments, optionally with the [] suffix browsers add for
// multi-file inputs.
var attachmentFieldPattern = regexp.MustCompile(`^item_(\d+)_attachments(?:\[\])?$`)

// AttachmentIndex extracts the item index encoded in a field name.
func AttachmentIndex(fieldName string) (int, bool) {
	m := attachmentFieldPattern.FindStringSubmatch(fieldName)
	if m == nil {
		return 0, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

// OrganizeAttachments groups files by the item index their field name
// encodes. Files whose field name does not follow the convention are left
// out. Upload order is preserved within an index.
func OrganizeAttachments(files []UploadedFile) map[int][]UploadedFile {
	byItem := make(map[int][]UploadedFile)
	for _, f := range files {
		idx, ok := AttachmentIndex(f.FieldName)
		if !ok {
			continue
		}
		byItem[idx] = append(byItem[idx], f)
	}
	return byItem
}
