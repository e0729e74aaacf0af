package stdlib

import (
	"fmt"
	"io"
	"os"

	"nimbus/internal/memory"
	"nimbus/internal/object"
	"nimbus/internal/vm"
)

// registerFileClass builds spec.md §6's File(path, mode="r") native
// class: an object.Class with IsNative set so `new File(...)` allocates
// a NativeInstance (internal/vm.instantiate), whose Data field holds
// the open *os.File for the lifetime of the script handle.
func registerFileClass(v *vm.VM) {
	heap := v.Heap()
	cls := heap.NewClass("File")
	cls.IsNative = true

	cls.Natives["constructor"] = heap.NewNative("constructor", fileConstructor(heap))
	cls.Natives["read"] = heap.NewNative("read", fileRead(heap))
	cls.Natives["write"] = heap.NewNative("write", fileWrite)
	cls.Natives["close"] = heap.NewNative("close", fileClose)
	cls.Natives["isOpen"] = heap.NewNative("isOpen", fileIsOpen)
	cls.Natives["size"] = heap.NewNative("size", fileSize)
	cls.Natives["remove"] = heap.NewNative("remove", fileRemove)

	v.Globals()["File"] = cls
}

func fileHandle(receiver object.Value) (*object.NativeInstance, *os.File, error) {
	ni, ok := receiver.(*object.NativeInstance)
	if !ok {
		return nil, nil, fmt.Errorf("not a File instance")
	}
	f, ok := ni.Data.(*os.File)
	if !ok || f == nil {
		return ni, nil, fmt.Errorf("file is closed")
	}
	return ni, f, nil
}

func fileConstructor(heap *memory.Heap) object.NativeFn {
	return func(receiver object.Value, args []object.Value) (object.Value, error) {
		ni, ok := receiver.(*object.NativeInstance)
		if !ok {
			return nil, fmt.Errorf("not a File instance")
		}
		path, err := argString(args, 0, "File")
		if err != nil {
			return nil, err
		}
		mode := "r"
		if len(args) > 1 {
			if m, ok := args[1].(*object.String); ok {
				mode = m.Value
			}
		}

		var flag int
		switch mode {
		case "r":
			flag = os.O_RDONLY
		case "w":
			flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		case "a":
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		default:
			return nil, fmt.Errorf("File: unknown mode %q", mode)
		}

		f, err := os.OpenFile(path, flag, 0644)
		if err != nil {
			return nil, err
		}
		ni.Data = f
		ni.Destructor = func(d interface{}) {
			if f, ok := d.(*os.File); ok {
				f.Close()
			}
		}
		ni.Fields["path"] = heap.NewString(path)
		return nil, nil
	}
}

func fileRead(heap *memory.Heap) object.NativeFn {
	return func(receiver object.Value, args []object.Value) (object.Value, error) {
		_, f, err := fileHandle(receiver)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return heap.NewString(string(data)), nil
	}
}

func fileWrite(receiver object.Value, args []object.Value) (object.Value, error) {
	_, f, err := fileHandle(receiver)
	if err != nil {
		return nil, err
	}
	s, err := argString(args, 0, "write")
	if err != nil {
		return nil, err
	}
	n, err := f.WriteString(s)
	if err != nil {
		return nil, err
	}
	return float64(n), nil
}

func fileClose(receiver object.Value, args []object.Value) (object.Value, error) {
	ni, ok := receiver.(*object.NativeInstance)
	if !ok {
		return nil, fmt.Errorf("not a File instance")
	}
	if f, ok := ni.Data.(*os.File); ok && f != nil {
		f.Close()
	}
	ni.Data = nil
	return nil, nil
}

func fileIsOpen(receiver object.Value, args []object.Value) (object.Value, error) {
	ni, ok := receiver.(*object.NativeInstance)
	if !ok {
		return false, nil
	}
	f, ok := ni.Data.(*os.File)
	return ok && f != nil, nil
}

func fileSize(receiver object.Value, args []object.Value) (object.Value, error) {
	_, f, err := fileHandle(receiver)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return float64(info.Size()), nil
}

func fileRemove(receiver object.Value, args []object.Value) (object.Value, error) {
	ni, ok := receiver.(*object.NativeInstance)
	if !ok {
		return nil, fmt.Errorf("not a File instance")
	}
	if f, ok := ni.Data.(*os.File); ok && f != nil {
		f.Close()
		ni.Data = nil
	}
	path, ok := ni.Fields["path"].(*object.String)
	if !ok {
		return nil, fmt.Errorf("File.remove: unknown path")
	}
	return nil, os.Remove(path.Value)
}
