/*
Package cmd provides all the commands for the kites3 binary.

The commands are separated by file, with the prefix for each command corresponding to the parent command, i.e.
bucketList.go corresponds to kites3 bucket list

The global flags configure the endpoint and the engine shared by every command. Every global flag can also be set
in $HOME/.kites3.yaml or through a KITES3_ prefixed environment variable, e.g. KITES3_PATH_STYLE=true

Usage

	kites3 --host localhost:14000 --https=false --path-style bucket create photos
	kites3 --host localhost:14000 --https=false object head photos a.jpg b.jpg
*/
package cmd
