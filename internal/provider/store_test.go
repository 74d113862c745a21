package provider

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 pages a listing two entries at a time.
type fakeS3 struct {
	s3iface.S3API
	pages  []*s3.ListObjectsV2Output
	inputs []s3.ListObjectsV2Input
	body   []byte
}

func (f *fakeS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, *in)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{
		pages: []*s3.ListObjectsV2Output{
			{
				CommonPrefixes:        []*s3.CommonPrefix{{Prefix: aws.String("2021/09/01/KLSX/")}},
				Contents:              []*s3.Object{{Key: aws.String("2021/09/01/NOP3_20210901")}},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("next"),
			},
			{
				CommonPrefixes: []*s3.CommonPrefix{{Prefix: aws.String("2021/09/01/KOKX/")}},
			},
		},
		body: []byte("volume"),
	}
	store := &S3Store{client: fake, bucket: "noaa-nexrad-level2"}
	assert.Equal(t, "s3", store.Source())

	objects, dirs, err := store.List(context.Background(), "2021/09/01/")
	require.NoError(t, err)
	assert.Equal(t, []string{"NOP3_20210901"}, objects)
	assert.Equal(t, []string{"KLSX", "KOKX"}, dirs)

	require.Len(t, fake.inputs, 2)
	assert.Equal(t, "noaa-nexrad-level2", aws.StringValue(fake.inputs[0].Bucket))
	assert.Equal(t, "/", aws.StringValue(fake.inputs[0].Delimiter))
	assert.Nil(t, fake.inputs[0].ContinuationToken)
	assert.Equal(t, "next", aws.StringValue(fake.inputs[1].ContinuationToken))

	body, err := store.Open(context.Background(), "2021/09/01/KLSX/x")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte("volume"), data)
}
