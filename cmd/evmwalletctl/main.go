// Command evmwalletctl exercises the evmwallet signing pipeline against a
// MockECDSAClient, for local development and manual smoke-testing against
// the Development environment. It never broadcasts anything; it only
// prints signed envelopes.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/ModChain/evmwallet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	principalHex string
	chainID      uint64
	core         *evmwallet.Core
)

func main() {
	root := &cobra.Command{
		Use:   "evmwalletctl",
		Short: "Operator CLI for the evmwallet threshold-ECDSA signing core",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("evmwallet")
			viper.AutomaticEnv()
			env, err := evmwallet.ParseEnvironment(viper.GetString("env"))
			if err != nil {
				env = evmwallet.Development
			}

			client, err := evmwallet.NewMockECDSAClient(evmwallet.DefaultTestPrivateKeyHex)
			if err != nil {
				return err
			}
			logger, _ := zap.NewDevelopment()
			core = evmwallet.NewCore(env, client, logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&principalHex, "principal", "aaaaaaaa", "hex-encoded caller principal")
	root.PersistentFlags().Uint64Var(&chainID, "chain-id", 1, "EVM chain id")
	viper.BindPFlag("principal", root.PersistentFlags().Lookup("principal"))

	root.AddCommand(createAddressCmd())
	root.AddCommand(signTxCmd())
	root.AddCommand(deployCmd())
	root.AddCommand(transferERC20Cmd())
	root.AddCommand(historyCmd())
	root.AddCommand(clearHistoryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func principal() (evmwallet.Principal, error) {
	b, err := hex.DecodeString(principalHex)
	if err != nil {
		return nil, fmt.Errorf("invalid --principal: %w", err)
	}
	return evmwallet.Principal(b), nil
}

func createAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-address",
		Short: "Derive and register a fresh address for --principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			addr, err := core.CreateAddress(context.Background(), p)
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		},
	}
}

func signTxCmd() *cobra.Command {
	var rawHex string
	cmd := &cobra.Command{
		Use:   "sign-tx",
		Short: "Sign a raw unsigned transaction envelope (hex) for --principal/--chain-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			raw, err := evmwallet.HexToBytes(rawHex)
			if err != nil {
				return err
			}
			signed, err := core.SignTransaction(context.Background(), p, raw, chainID)
			if err != nil {
				return err
			}
			fmt.Println(evmwallet.BytesToHex(signed))
			return nil
		},
	}
	cmd.Flags().StringVar(&rawHex, "raw", "", "hex-encoded unsigned transaction")
	return cmd
}

func deployCmd() *cobra.Command {
	var bytecodeHex, maxFee, maxPriorityFee string
	var gasLimit uint64
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build and sign a contract-creation transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			bytecode, err := evmwallet.HexToBytes(bytecodeHex)
			if err != nil {
				return err
			}
			mf, ok := new(big.Int).SetString(maxFee, 10)
			if !ok {
				return fmt.Errorf("invalid --max-fee %q", maxFee)
			}
			mpf, ok := new(big.Int).SetString(maxPriorityFee, 10)
			if !ok {
				return fmt.Errorf("invalid --max-priority-fee %q", maxPriorityFee)
			}
			signed, err := core.DeployContract(context.Background(), p, bytecode, chainID, mpf, mf, gasLimit)
			if err != nil {
				return err
			}
			fmt.Println(evmwallet.BytesToHex(signed))
			return nil
		},
	}
	cmd.Flags().StringVar(&bytecodeHex, "bytecode", "", "hex-encoded contract bytecode")
	cmd.Flags().StringVar(&maxFee, "max-fee", "0", "max fee per gas, base-10")
	cmd.Flags().StringVar(&maxPriorityFee, "max-priority-fee", "0", "max priority fee per gas, base-10")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 100000, "gas limit")
	return cmd
}

func transferERC20Cmd() *cobra.Command {
	var recipient, contract, value, maxFee, maxPriorityFee string
	var gasLimit uint64
	cmd := &cobra.Command{
		Use:   "transfer-erc20",
		Short: "Build and sign an ERC-20 transfer transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			val, ok := new(big.Int).SetString(value, 10)
			if !ok {
				return fmt.Errorf("invalid --value %q", value)
			}
			mf, ok := new(big.Int).SetString(maxFee, 10)
			if !ok {
				return fmt.Errorf("invalid --max-fee %q", maxFee)
			}
			mpf, ok := new(big.Int).SetString(maxPriorityFee, 10)
			if !ok {
				return fmt.Errorf("invalid --max-priority-fee %q", maxPriorityFee)
			}
			signed, err := core.TransferERC20(context.Background(), p, chainID, mpf, mf, gasLimit, recipient, val, contract)
			if err != nil {
				return err
			}
			fmt.Println(evmwallet.BytesToHex(signed))
			return nil
		},
	}
	cmd.Flags().StringVar(&recipient, "to", "", "recipient address")
	cmd.Flags().StringVar(&contract, "contract", "", "ERC-20 contract address")
	cmd.Flags().StringVar(&value, "value", "0", "transfer value, base-10")
	cmd.Flags().StringVar(&maxFee, "max-fee", "0", "max fee per gas, base-10")
	cmd.Flags().StringVar(&maxPriorityFee, "max-priority-fee", "0", "max priority fee per gas, base-10")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 21000, "gas limit")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the caller's address and chain journal for --chain-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			data, err := core.GetCallerData(p, chainID)
			if err != nil {
				return err
			}
			fmt.Printf("address: %s\nnonce: %d\ntransactions: %d\n", data.Address, data.Journal.Nonce, len(data.Journal.Transactions))
			return nil
		},
	}
}

func clearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Clear the caller's transaction history for --chain-id, keeping the nonce",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal()
			if err != nil {
				return err
			}
			return core.ClearHistory(p, chainID)
		},
	}
}
