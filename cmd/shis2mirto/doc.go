/*
Shis2mirto converts Scanning HIS interferometer granules into the input
products of the Mirto retrieval.

Usage:

	shis2mirto [global options] command [arguments]

The commands are:

	create_fov_file  convert a Scanning HIS granule into a field-of-view product
	create_fg_file   build a first-guess atmospheric state for the Mirto retrieval
	version          print the shis2mirto version

Use "shis2mirto help [command]" for more information about a command.

The global options are:

	-config path
		path to a TOML configuration file. Without it the tool looks
		for configs/config.toml and config.toml and falls back to
		built-in defaults.
	-quiet
		log errors only.
	-verbose
		log informational messages.
	-debug
		log debug messages.
	-version
		print version and exit.

Create_fov_file selects the observations of a granule whose FOV angle
lies inside a window around a center angle, and the instrument channels
nearest a list of desired wavenumbers, and writes both subsets to
fov.nc. Create_fg_file reads the points of a fov.nc back, collects an
atmospheric profile for each one from the radiosonde narrator service,
and writes the first-guess state to firstguess.nc.
*/
package main
