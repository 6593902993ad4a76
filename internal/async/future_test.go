package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Result(t *testing.T) {
	f := Run(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// Повторное чтение возвращает то же значение
	v, err = f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_Error(t *testing.T) {
	boom := errors.New("boom")
	f := Run(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})

	<-f.Done()
	_, err := f.Result()
	assert.ErrorIs(t, err, boom)
}

func TestFuture_AwaitCanceled(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})

	f := Run(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		close(finished)
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Операция продолжается и завершается сама
	close(release)
	<-finished
	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
