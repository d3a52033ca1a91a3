package log

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func Test_WithFields(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, GetLogger(ctx))
	require.Empty(t, Fields(ctx))

	subCtx := WithFields(ctx, map[string]interface{}{"project": "p1", "endpoint": "sep"})
	subSubCtx := WithFields(subCtx, map[string]interface{}{"endpoint": "other"})

	require.Equal(t, "p1", Fields(subSubCtx)["project"])
	require.Equal(t, "other", Fields(subSubCtx)["endpoint"])
	require.Equal(t, "sep", Fields(subCtx)["endpoint"])
}

func Test_SetupWritesToOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	Setup(buf, false)
	defer Setup(new(bytes.Buffer), false)

	Debugf(context.Background())("hidden")
	Infof(context.Background())("visible %d", 1)

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "visible 1")
	require.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func Test_CallerPrettyfier(t *testing.T) {
	fn, file := CallerPrettyfier(&runtime.Frame{
		File:     "/src/sepctl/pkg/vsts/client.go",
		Line:     42,
		Function: "github.com/flant/negentropy/sepctl/pkg/vsts.(*Client).Toggle",
	})

	require.Equal(t, "vsts.(*Client).Toggle", fn)
	require.Equal(t, "vsts/client.go:42", file)
}
