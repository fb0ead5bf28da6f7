package core

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdmin(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: " Admin@Dept.edu ," + string(hash)},
		{name: "missing hash", raw: "admin@dept.edu", wantErr: true},
		{name: "blank email", raw: " ," + string(hash), wantErr: true},
		{name: "plain password", raw: "admin@dept.edu,s3cret!", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, err := ParseAdmin(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAdmin() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				assert.Equal(t, "admin@dept.edu", admin.Email)
				assert.NoError(t, admin.CheckPassword("s3cret!"))
			}
		})
	}
}

func TestAdmins_Authenticate(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	admins := Admins{{Email: "admin@dept.edu", PasswordHash: hash}}

	admin, err := admins.Authenticate("ADMIN@dept.edu ", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "admin@dept.edu", admin.Email)

	_, err = admins.Authenticate("admin@dept.edu", "wrong")
	assert.Equal(t, ErrAuthenticationFailed, err)

	_, err = admins.Authenticate("nobody@dept.edu", "s3cret!")
	assert.Equal(t, ErrAuthenticationFailed, err)
}

func TestNewUpload(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	tests := []struct {
		name     string
		filename string
		data     []byte
		maxSize  int64
		wantType string
		wantCT   string
		wantErr  error
	}{
		{name: "pdf", filename: "notes.pdf", data: pdf, wantType: FileTypePDF, wantCT: "application/pdf"},
		{name: "png named .pdf", filename: "chart.pdf", data: png, wantType: FileTypeImage, wantCT: "image/png"},
		{name: "path is stripped", filename: "../../etc/notes.pdf", data: pdf, wantType: FileTypePDF, wantCT: "application/pdf"},
		{name: "empty", filename: "empty.pdf", data: nil, wantErr: ErrEmptyFile},
		{name: "too large", filename: "big.pdf", data: pdf, maxSize: 4, wantErr: ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, err := NewUpload(tt.filename, strings.NewReader(string(tt.data)), tt.maxSize)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, up.FileType)
			assert.True(t, up.Is(tt.wantCT), "content type %s", up.ContentType)
			assert.NotContains(t, up.Filename, "/")
			assert.Equal(t, int64(len(tt.data)), up.Size())
		})
	}
}

func TestUpload_Key(t *testing.T) {
	up := Upload{Filename: "Week 1 (notes).pdf"}
	key := up.Key("materials")
	assert.True(t, strings.HasPrefix(key, "materials/"))
	assert.True(t, strings.HasSuffix(key, "-Week_1__notes_.pdf"))
	assert.NotEqual(t, key, up.Key("materials"))
}

func TestFileTypeOf(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               FileTypeImage,
		"video/mp4":                FileTypeVideo,
		"application/pdf":          FileTypePDF,
		"application/octet-stream": FileTypePDF,
		"application/vnd.ms-powerpoint":                                             FileTypePowerpoint,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": FileTypePowerpoint,
	}
	for ct, want := range tests {
		if got := FileTypeOf(ct); got != want {
			t.Errorf("FileTypeOf(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestValidators(t *testing.T) {
	translator := NewTranslator()
	validate := NewValidator(translator)

	type input struct {
		Title    string `json:"title" validate:"notblank"`
		Level    string `json:"level" validate:"level"`
		FileType string `json:"file_type" validate:"filetype"`
	}

	require.NoError(t, validate.Struct(input{Title: "x", Level: Level300, FileType: FileTypeVideo}))

	err := validate.Struct(input{Title: "  ", Level: "500", FileType: "doc"})
	var vErrs validator.ValidationErrors
	require.True(t, errors.As(err, &vErrs))

	got := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		got[vErr.Field()] = vErr.Translate(translator)
	}
	assert.Equal(t, map[string]string{
		"title":     notBlankText,
		"level":     levelText,
		"file_type": fileTypeText,
	}, got)
}

func TestNotFoundError(t *testing.T) {
	errNotFound := NewNotFoundError("widget")
	err := errors.Wrap(errNotFound, "getting widget")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "widget not found", errors.Cause(err).Error())
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestAllowedOrderings(t *testing.T) {
	got := AllowedOrderings([]DBOrdering{{Field: "NAME"}, {Field: "password"}, {Field: "id", Ascending: true}}, "name", "id")
	assert.Equal(t, []DBOrdering{{Field: "name"}, {Field: "id", Ascending: true}}, got)
	assert.Equal(t, "name DESC", got[0].String())
}
