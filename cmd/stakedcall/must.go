// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/genesis"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/lvldb"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

var logger = log.WithContext("pkg", "main")

func initLogger(ctx *cli.Context) {
	jsonLogs := ctx.Bool(jsonLogsFlag.Name)
	useColor := !jsonLogs && isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewHandler(os.Stderr, ctx.Int(verbosityFlag.Name), useColor, jsonLogs))
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	config, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, errors.WithMessage(err, "load genesis file")
	}
	return genesis.New(config)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakedcall")
		}
		return filepath.Join(home, ".org.vechain.stakedcall")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(gene *genesis.Genesis, n *node.Node, dataDir, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	best := n.Best()
	info := fmt.Sprintf(`Starting %v
    Network     [ %v ]
    Best block  [ #%v @%v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		common.MakeName("StakedCall", fullVersion()),
		gene.ID(),
		best.Number, time.Unix(int64(best.Time), 0),
		dataDir,
		apiURL)

	if gene.ID() == genesis.NewDevnet().ID() {
		info += tableHead
		for _, a := range genesis.DevAccounts() {
			info += fmt.Sprintf(tableContent,
				a.Address,
				thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
			)
		}
		info += tableEnd
	}
	fmt.Println(info)
}

// loadKey accepts a hex encoded key or dev:<n>.
func loadKey(s string) (*ecdsa.PrivateKey, error) {
	if idx, ok := strings.CutPrefix(s, "dev:"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, err
		}
		accs := genesis.DevAccounts()
		if n < 0 || n >= len(accs) {
			return nil, fmt.Errorf("dev account index out of range [0, %d)", len(accs))
		}
		return accs[n].PrivateKey, nil
	}
	return crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
}

func buildClause(contractName, methodName, value string, args []string) (*tx.Clause, error) {
	var (
		addr   thor.Address
		method = methodName
	)
	switch contractName {
	case "option":
		addr = builtin.Option.Address
	case "staking":
		addr = builtin.Staking.Address
	case "oracle":
		addr = builtin.Oracle.Address
	default:
		return nil, fmt.Errorf("unknown contract %q", contractName)
	}
	contract, _ := builtin.Lookup(addr)

	amount, err := thor.ParseAmount(value)
	if err != nil {
		return nil, errors.WithMessage(err, "value")
	}
	clause := tx.NewClause(addr).WithValue(amount)
	if method == "" {
		return clause, nil
	}

	m, ok := contract.ABI.MethodByName(method)
	if !ok {
		return nil, fmt.Errorf("method %q not found in %s", method, contractName)
	}
	values, err := parseArgs(m.Inputs(), args)
	if err != nil {
		return nil, err
	}
	data, err := m.EncodeInput(values...)
	if err != nil {
		return nil, err
	}
	return clause.WithData(data), nil
}

// parseArgs converts command line arguments to the types of inputs.
func parseArgs(inputs abi.Arguments, args []string) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}
	values := make([]any, len(args))
	for i, input := range inputs {
		v, err := parseArg(input.Type, args[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "argument %q", input.Name)
		}
		values[i] = v
	}
	return values, nil
}

func parseArg(typ abi.Type, s string) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		return common.Address(addr), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.UintTy, abi.IntTy:
		switch typ.Size {
		case 8:
			if typ.T == abi.UintTy {
				v, err := strconv.ParseUint(s, 0, 8)
				return uint8(v), err
			}
		case 64:
			if typ.T == abi.UintTy {
				return strconv.ParseUint(s, 0, 64)
			}
			return strconv.ParseInt(s, 0, 64)
		case 256:
			v, ok := parseBig(s)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			if typ.T == abi.UintTy && v.Sign() < 0 {
				return nil, fmt.Errorf("negative value %q", s)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("unsupported type %v", typ)
}

// parseBig accepts hex, decimal and signed decimal.
func parseBig(s string) (*big.Int, bool) {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		v, ok := ethmath.ParseBig256(rest)
		if !ok {
			return nil, false
		}
		return v.Neg(v), true
	}
	return ethmath.ParseBig256(s)
}
