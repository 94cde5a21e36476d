package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	f.input = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func makeFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("image", name)
	assert.NoError(t, err)
	_, err = fw.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	form, err := multipart.NewReader(buf, w.Boundary()).ReadForm(32 << 20)
	assert.NoError(t, err)
	return form.File["image"][0]
}

// TestS3UploadFileStreamsWholeBody 测试上传的是文件的完整内容而不是开头一段
func TestS3UploadFileStreamsWholeBody(t *testing.T) {
	content := bytes.Repeat([]byte("帖子配图"), 4096)
	fh := makeFileHeader(t, "cover.bin", content)

	fake := &fakeS3{}
	client := &S3Client{s3: fake, bucket: "media"}

	ref, err := client.UploadFile(fh, "posts/10/cover.bin")
	assert.NoError(t, err)
	assert.Equal(t, "https://media.s3.amazonaws.com/posts/10/cover.bin", ref)

	assert.NotNil(t, fake.input)
	assert.Equal(t, "media", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "posts/10/cover.bin", aws.StringValue(fake.input.Key))
	assert.Equal(t, int64(len(content)), aws.Int64Value(fake.input.ContentLength))
	assert.Equal(t, content, fake.body)
}
