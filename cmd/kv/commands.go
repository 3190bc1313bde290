package kv

import (
	"fmt"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Set(args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			resp, ok, err := rpcStore.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}

	metaSetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the metadata of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcMeta.SetMeta(args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Println("setMeta successfully")
			return nil
		},
	}
	metaGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the metadata of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			resp, ok, err := rpcMeta.GetMeta(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, meta=%s\n", key, ok, resp)
			return nil
		},
	}
	metaDelCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes the metadata of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcMeta.DeleteMeta(args[0]); err != nil {
				return err
			}
			fmt.Println("deleteMeta successfully")
			return nil
		},
	}
)
