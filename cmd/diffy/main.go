// Command diffy runs the sidediff HTTP server: upload two files, get back a
// side-by-side diff link.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.etcd.io/bbolt"

	"github.com/sidediff/sidediff/pkg/db"
	diffyhttp "github.com/sidediff/sidediff/pkg/http"
	"github.com/sidediff/sidediff/pkg/storage"
)

type optsType struct {
	listenAddr     string
	publicURL      string
	dbFile         string
	s3Endpoint     string
	s3AccessKey    string
	s3AccessSecret string
	s3Bucket       string
	cacheMaxMB     uint64
}

func defaultEnv(s, def string) string {
	v, ok := os.LookupEnv(s)
	if ok {
		return v
	}
	return def
}

func stringVar(p *string, fg, defaultValue, usage string) {
	ev := strings.ReplaceAll(strings.ToUpper(fg), "-", "_")
	flag.StringVar(p, fg, defaultEnv(ev, defaultValue), usage+". env var: "+ev)
}

func main() {
	var opts optsType
	stringVar(&opts.listenAddr, "listen-addr", ":18844", "listen address for the web server")
	stringVar(&opts.publicURL, "public-url", "localhost:18844", "url for the server, used in the curl example")
	stringVar(&opts.dbFile, "db-file", "data/db.bolt", "the file used for the database. "+
		"this will be a cache (if used together with s3) or the permanent database")
	stringVar(&opts.s3Endpoint, "s3-endpoint", "", "s3 endpoint")
	stringVar(&opts.s3AccessKey, "s3-access-key", "", "s3 access key")
	stringVar(&opts.s3AccessSecret, "s3-access-secret", "", "s3 access secret")
	stringVar(&opts.s3Bucket, "s3-bucket", "", "s3 bucket")
	flag.Uint64Var(&opts.cacheMaxMB, "cache-max-mb", 256, "max size in MB of the local cache when s3 storage is in use")
	flag.Parse()

	bdb, err := bbolt.Open(opts.dbFile, 0o600, nil)
	if err != nil {
		panic(fmt.Errorf("db open error: %w", err))
	}

	srv := &diffyhttp.Server{
		PublicURL: opts.publicURL,
		DB:        &db.DB{DB: bdb},
		Storage:   buildStorage(opts, bdb),
	}

	fmt.Println("listening on", opts.listenAddr)
	panic(http.ListenAndServe(opts.listenAddr, srv.Router()))
}

// buildStorage wires the permanent object store. With no S3 endpoint
// configured, the bbolt database doubles as permanent storage. With an S3
// endpoint, S3 is the permanent store and the bbolt database becomes a
// bounded local cache in front of it.
func buildStorage(opts optsType, bdb *bbolt.DB) storage.Storage {
	if opts.s3Endpoint == "" {
		return storage.NewDBStorage(bdb, []byte("storage"))
	}

	minioClient, err := minio.New(opts.s3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.s3AccessKey, opts.s3AccessSecret, ""),
		Secure: true,
	})
	if err != nil {
		panic(fmt.Errorf("minio init error: %w", err))
	}

	permanent := storage.NewMinioStorage(minioClient, opts.s3Bucket)
	cacheStore := storage.NewDBStorage(bdb, []byte("cache"))
	cache, err := storage.NewCache(cacheStore, permanent, opts.cacheMaxMB<<20)
	if err != nil {
		panic(fmt.Errorf("cache init error: %w", err))
	}
	return cache
}
