// Copyright 2023 The CubeFS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package main

import (
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cubefs/cubefs/blobstore/common/config"
	"github.com/cubefs/cubefs/blobstore/common/profile"
	"github.com/cubefs/cubefs/blobstore/common/rpc"
	"github.com/cubefs/cubefs/blobstore/util/errors"
	"github.com/cubefs/cubefs/blobstore/util/log"
	_ "github.com/cubefs/cubefs/blobstore/util/version"
	"github.com/spf13/cobra"

	"github.com/kvcachestore/master/server"
)

// fileConfig is what server.json unmarshals into: the master's own Config
// plus process-level knobs config.Load doesn't know about.
type fileConfig struct {
	server.Config

	GrpcBindPort int       `json:"grpc_bind_port"`
	LogLevel     log.Level `json:"log_level"`
}

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "kvmaster",
		Short: "metadata master for a disaggregated KV-cache object store",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the master service",
		Run:   runServe,
	}
	cmd.Flags().StringVarP(&configFile, "config", "f", "server.json", "path to the server config file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	config.Init("f", "", configFile)

	cfg := &fileConfig{}
	if err := config.Load(cfg); err != nil {
		log.Fatal(errors.Detail(err))
	}
	log.SetOutputLevel(cfg.LogLevel)
	registerLogLevel()

	srv, err := server.NewServer(cfg.Config)
	if err != nil {
		log.Fatal(errors.Detail(err))
	}
	srv.Start()

	httpServer := server.NewHttpServer(srv)
	httpServer.Serve(":" + strconv.Itoa(cfg.MetricsPort))

	rpcServer := server.NewRPCServer(srv)
	go func() {
		if err := rpcServer.Serve(":" + strconv.Itoa(cfg.GrpcBindPort)); err != nil {
			log.Fatal("grpc server exited:", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	<-ch

	rpcServer.Stop()
	httpServer.Stop()
	srv.Close()
}

func registerLogLevel() {
	logLevelPath, logLevelHandler := log.ChangeDefaultLevelHandler()
	profile.HandleFunc(http.MethodPost, logLevelPath, func(c *rpc.Context) {
		logLevelHandler.ServeHTTP(c.Writer, c.Request)
	})
	profile.HandleFunc(http.MethodGet, logLevelPath, func(c *rpc.Context) {
		logLevelHandler.ServeHTTP(c.Writer, c.Request)
	})
}
