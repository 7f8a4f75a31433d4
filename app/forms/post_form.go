package forms

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/storage"

	"github.com/gabriel-vasile/mimetype"
)

// GroupLookup resolves the group a post is filed under.
type GroupLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Group, error)
}

// PostForm is the create/edit form for a post.
type PostForm struct {
	Text       string `form:"text" validate:"required"`
	Group      string `form:"group"`
	ClearImage bool   `form:"image-clear" validate:"-"`

	// Image is set when a valid image was uploaded.
	Image *storage.Upload `form:"image" validate:"-" json:"-"`
	// CurrentImage is the key of the image already attached to the edited post.
	CurrentImage string `form:"-" validate:"-"`

	Errors Errors `form:"-" validate:"-"`

	groupID   *uint
	imageFile *multipart.FileHeader
	maxBytes  int64
}

// NewPostForm returns an unbound form, prefilled from post when editing.
func NewPostForm(post *models.Post, maxUploadBytes int64) *PostForm {
	f := &PostForm{Errors: Errors{}, maxBytes: maxUploadBytes}
	if post != nil {
		f.Text = post.Text
		f.CurrentImage = post.Image
		if post.GroupID != nil {
			f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
	}
	return f
}

// formOverhead is the body allowance for fields and multipart framing on top
// of the image limit.
const formOverhead = 1 << 20

// MsgImageTooLarge is reported for images over the upload limit.
const MsgImageTooLarge = "The uploaded image is too large."

// Bind reads the submitted fields. With an upload limit the body is capped
// before parsing. Unparseable bodies are reported as form errors.
func (f *PostForm) Bind(w http.ResponseWriter, r *http.Request) {
	if f.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, f.maxBytes+formOverhead)
	}
	if err := parse(r, 32<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			f.Errors.Add("image", MsgImageTooLarge)
			return
		}
		f.Errors.Add("", "The submitted data could not be read.")
		return
	}
	f.Text = r.PostFormValue("text")
	f.Group = strings.TrimSpace(r.PostFormValue("group"))
	f.ClearImage = r.PostFormValue("image-clear") == "on"

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 && files[0].Filename != "" {
			f.imageFile = files[0]
		}
	}
}

// Valid validates the bound data. Text is trimmed in place.
func (f *PostForm) Valid(ctx context.Context, groups GroupLookup) bool {
	f.Text = strings.TrimSpace(f.Text)
	validateStruct(f, f.Errors)

	if f.Group != "" {
		f.validateGroup(ctx, groups)
	}
	if f.imageFile != nil {
		f.validateImage()
	}
	return len(f.Errors) == 0
}

// GroupID returns the chosen group, or nil for none. Only meaningful after Valid.
func (f *PostForm) GroupID() *uint {
	return f.groupID
}

// SelectedGroup reports whether id is the chosen group, for rendering the select.
func (f *PostForm) SelectedGroup(id uint) bool {
	return f.Group == strconv.FormatUint(uint64(id), 10)
}

func (f *PostForm) validateGroup(ctx context.Context, groups GroupLookup) {
	id, err := strconv.ParseUint(f.Group, 10, 64)
	if err != nil || id == 0 {
		f.Errors.Add("group", MsgInvalidGroup)
		return
	}
	g, err := groups.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			f.Errors.Add("group", MsgInvalidGroup)
			return
		}
		f.Errors.Add("group", err.Error())
		return
	}
	f.groupID = &g.ID
}

func (f *PostForm) validateImage() {
	if f.imageFile.Size == 0 {
		f.Errors.Add("image", MsgEmptyFile)
		return
	}
	if f.maxBytes > 0 && f.imageFile.Size > f.maxBytes {
		f.Errors.Add("image", MsgImageTooLarge)
		return
	}

	file, err := f.imageFile.Open()
	if err != nil {
		f.Errors.Add("image", MsgInvalidImage)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		f.Errors.Add("image", MsgInvalidImage)
		return
	}

	upload, ok := SniffImage(f.imageFile.Filename, data)
	if !ok {
		f.Errors.Add("image", MsgInvalidImage)
		return
	}
	f.Image = upload
}

// SniffImage accepts data only if it both looks like and decodes as an image.
func SniffImage(filename string, data []byte) (*storage.Upload, bool) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, false
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, false
	}
	return &storage.Upload{
		Filename:    filename,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
		Data:        data,
	}, true
}
