package cover

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	os.Exit(m.Run())
}
