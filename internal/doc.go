// Copyright © 2026 Genome Research Limited
//
//  This file is part of altocumulus.
//
//  altocumulus is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Lesser General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  altocumulus is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Lesser General Public License for more details.
//
//  You should have received a copy of the GNU Lesser General Public License
//  along with altocumulus. If not, see <http://www.gnu.org/licenses/>.

/*
Package internal houses altocumulus's general utility functions.

It also implements the config system used by the cmd package (see config.go).

    import "github.com/lilab-bcb/altocumulus/internal"
    import "github.com/inconshreveable/log15"
    logger := log15.New()
    logger.SetHandler(log15.LvlFilterHandler(log15.LvlWarn, log15.StderrHandler))
    config := internal.ConfigLoad(logger)
    argv, err := config.TransferArgv()
*/
package internal
